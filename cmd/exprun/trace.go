package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jcormont/expression-runner/vm"
)

var (
	traceStep = color.New(color.FgHiBlack).SprintFunc()
	traceCall = color.New(color.FgCyan).SprintFunc()
)

// tracer prints each evaluated node and function call, indented by frame
// depth.
type tracer struct {
	w io.Writer
}

func newTracer(w io.Writer) *tracer {
	return &tracer{w: w}
}

func (t *tracer) Config() vm.ObserverConfig {
	cfg := vm.NewObserverConfig(vm.StepAll)
	cfg.ObserveCalls = true
	cfg.ObserveReturns = true
	return cfg
}

func (t *tracer) OnStep(e vm.StepEvent) bool {
	fmt.Fprintf(t.w, "%s%s\n", indent(e.FrameDepth), traceStep(fmt.Sprintf("%4d %s", e.Step, e.OpcodeName)))
	return true
}

func (t *tracer) OnCall(e vm.CallEvent) bool {
	fmt.Fprintf(t.w, "%s%s\n", indent(e.FrameDepth), traceCall(fmt.Sprintf("call %s/%d", funcName(e.FunctionName), e.ArgCount)))
	return true
}

func (t *tracer) OnReturn(e vm.ReturnEvent) bool {
	fmt.Fprintf(t.w, "%s%s\n", indent(e.FrameDepth), traceCall("return "+funcName(e.FunctionName)))
	return true
}

func funcName(name string) string {
	if name == "" {
		return "=>"
	}
	return name
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
