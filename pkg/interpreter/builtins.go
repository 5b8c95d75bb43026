package interpreter

import (
	"time"

	"valkyrie/interpreter-go/pkg/runtime"
)

func (i *Interpreter) defineBuiltins() {
	i.global.Define("clock", runtime.NativeFunctionValue{
		Name:      "clock",
		ArityHint: 0,
		Impl: func(_ []runtime.Value) (runtime.Value, error) {
			return runtime.NumberValue{Val: float64(time.Now().UnixNano()) / float64(time.Second)}, nil
		},
	})
}
