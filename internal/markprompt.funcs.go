package internal

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Func represents a callable function in expressions
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(args []any) (any, error)
}

// FuncRegistry manages registered functions
type FuncRegistry struct {
	funcs map[string]*Func
	mu    sync.RWMutex
}

// NewFuncRegistry creates a new function registry
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{funcs: make(map[string]*Func)}
}

// Register adds a function to the registry
func (r *FuncRegistry) Register(f *Func) error {
	if f == nil {
		return NewFuncError(ErrMsgFuncNilFunc, "")
	}
	if f.Name == "" {
		return NewFuncError(ErrMsgFuncEmptyName, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[f.Name]; exists {
		return NewFuncError(ErrMsgFuncAlreadyExists, f.Name)
	}
	r.funcs[f.Name] = f
	return nil
}

// MustRegister adds a function and panics on error
func (r *FuncRegistry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Call invokes a function by name with the given arguments
func (r *FuncRegistry) Call(name string, args []any) (any, error) {
	r.mu.RLock()
	f, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, NewFuncError(ErrMsgFuncNotFound, name)
	}
	if len(args) < f.MinArgs {
		return nil, NewFuncArgError(ErrMsgFuncTooFewArgs, name, f.MinArgs, len(args))
	}
	if f.MaxArgs >= 0 && len(args) > f.MaxArgs {
		return nil, NewFuncArgError(ErrMsgFuncTooManyArgs, name, f.MaxArgs, len(args))
	}

	result, err := f.Fn(args)
	if err != nil {
		return nil, &FuncExecError{FuncName: name, Cause: err}
	}
	return result, nil
}

// List returns all registered function names, sorted
func (r *FuncRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Built-in function names
const (
	FuncNameLen      = "len"
	FuncNameUpper    = "upper"
	FuncNameLower    = "lower"
	FuncNameTrim     = "trim"
	FuncNameJoin     = "join"
	FuncNameContains = "contains"
	FuncNameFirst    = "first"
	FuncNameLast     = "last"
	FuncNameDefault  = "default"
)

// NewBuiltinFuncRegistry returns a registry holding the built-in functions
func NewBuiltinFuncRegistry() *FuncRegistry {
	r := NewFuncRegistry()
	RegisterBuiltinFuncs(r)
	return r
}

// RegisterBuiltinFuncs registers all built-in functions with the registry
func RegisterBuiltinFuncs(r *FuncRegistry) {
	r.MustRegister(&Func{Name: FuncNameLen, MinArgs: 1, MaxArgs: 1, Fn: func(args []any) (any, error) {
		return Length(args[0])
	}})
	r.MustRegister(&Func{Name: FuncNameUpper, MinArgs: 1, MaxArgs: 1, Fn: stringFunc(strings.ToUpper)})
	r.MustRegister(&Func{Name: FuncNameLower, MinArgs: 1, MaxArgs: 1, Fn: stringFunc(strings.ToLower)})
	r.MustRegister(&Func{Name: FuncNameTrim, MinArgs: 1, MaxArgs: 1, Fn: stringFunc(strings.TrimSpace)})

	r.MustRegister(&Func{Name: FuncNameJoin, MinArgs: 2, MaxArgs: 2, Fn: func(args []any) (any, error) {
		items, err := ToSlice(args[0])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = AnyToString(item)
		}
		return strings.Join(parts, AnyToString(args[1])), nil
	}})

	r.MustRegister(&Func{Name: FuncNameContains, MinArgs: 2, MaxArgs: 2, Fn: func(args []any) (any, error) {
		if s, ok := args[0].(string); ok {
			return strings.Contains(s, AnyToString(args[1])), nil
		}
		items, err := ToSlice(args[0])
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if compareEqual(item, args[1]) {
				return true, nil
			}
		}
		return false, nil
	}})

	r.MustRegister(&Func{Name: FuncNameFirst, MinArgs: 1, MaxArgs: 1, Fn: func(args []any) (any, error) {
		items, err := ToSlice(args[0])
		if err != nil || len(items) == 0 {
			return nil, err
		}
		return items[0], nil
	}})

	r.MustRegister(&Func{Name: FuncNameLast, MinArgs: 1, MaxArgs: 1, Fn: func(args []any) (any, error) {
		items, err := ToSlice(args[0])
		if err != nil || len(items) == 0 {
			return nil, err
		}
		return items[len(items)-1], nil
	}})

	r.MustRegister(&Func{Name: FuncNameDefault, MinArgs: 2, MaxArgs: 2, Fn: func(args []any) (any, error) {
		if IsTruthy(args[0]) {
			return args[0], nil
		}
		return args[1], nil
	}})
}

func stringFunc(fn func(string) string) func([]any) (any, error) {
	return func(args []any) (any, error) {
		return fn(AnyToString(args[0])), nil
	}
}

// FuncError represents a function-related error
type FuncError struct {
	Message  string
	FuncName string
}

// NewFuncError creates a new function error
func NewFuncError(message, funcName string) *FuncError {
	return &FuncError{Message: message, FuncName: funcName}
}

func (e *FuncError) Error() string {
	if e.FuncName != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.FuncName)
	}
	return e.Message
}

// FuncArgError represents a function argument count error
type FuncArgError struct {
	Message  string
	FuncName string
	Expected int
	Actual   int
}

// NewFuncArgError creates a new function argument error
func NewFuncArgError(message, funcName string, expected, actual int) *FuncArgError {
	return &FuncArgError{Message: message, FuncName: funcName, Expected: expected, Actual: actual}
}

func (e *FuncArgError) Error() string {
	return fmt.Sprintf("%s: %s (expected %d, got %d)", e.Message, e.FuncName, e.Expected, e.Actual)
}

// FuncExecError represents a function execution error
type FuncExecError struct {
	FuncName string
	Cause    error
}

func (e *FuncExecError) Error() string {
	return fmt.Sprintf("function %s failed: %v", e.FuncName, e.Cause)
}

func (e *FuncExecError) Unwrap() error {
	return e.Cause
}

// Function error messages
const (
	ErrMsgFuncNilFunc       = "function cannot be nil"
	ErrMsgFuncEmptyName     = "function name cannot be empty"
	ErrMsgFuncAlreadyExists = "function already registered"
	ErrMsgFuncNotFound      = "function not found"
	ErrMsgFuncTooFewArgs    = "too few arguments"
	ErrMsgFuncTooManyArgs   = "too many arguments"
	ErrMsgFuncExpectedSlice = "expected a list"
)
