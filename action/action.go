// Package action models the four interactive actions and their
// onSuccess/onError continuations as a closed set of Go types.
package action

import (
	"strings"
	"time"
)

// Kind is the value of the "action" discriminator.
type Kind string

const (
	KindNavigate Kind = "navigate"
	KindSetState Kind = "setState"
	KindApiCall  Kind = "apiCall"
	KindCustom   Kind = "custom"
)

// Action is implemented only by Navigate, SetState, ApiCall and Custom.
type Action interface {
	Kind() Kind
	Continuations() Chain
	sealed()
}

// Chain holds the optional continuations shared by every variant.
type Chain struct {
	OnSuccess Action
	OnError   Action
}

func (c Chain) Continuations() Chain { return c }

// Next returns the continuation for the given outcome.
func (c Chain) Next(succeeded bool) Action {
	if succeeded {
		return c.OnSuccess
	}
	return c.OnError
}

type Navigate struct {
	Target    string
	Replace   bool
	Arguments map[string]any
	Chain
}

func (Navigate) Kind() Kind { return KindNavigate }
func (Navigate) sealed()    {}

// SetState sets each non nil update and removes each key mapped to nil.
type SetState struct {
	Updates map[string]any
	Chain
}

func (SetState) Kind() Kind { return KindSetState }
func (SetState) sealed()    {}

// Method is an HTTP verb accepted by ApiCall.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

var methods = map[string]Method{
	"GET":    MethodGet,
	"POST":   MethodPost,
	"PUT":    MethodPut,
	"DELETE": MethodDelete,
	"PATCH":  MethodPatch,
}

// ParseMethod is case insensitive.
func ParseMethod(s string) (Method, bool) {
	m, ok := methods[strings.ToUpper(strings.TrimSpace(s))]
	return m, ok
}

type ApiCall struct {
	Method      Method
	Endpoint    string
	Body        any
	QueryParams map[string]any
	Headers     map[string]string
	// TimeoutSeconds is nil when the collaborator default applies.
	TimeoutSeconds *float64
	Chain
}

func (ApiCall) Kind() Kind { return KindApiCall }
func (ApiCall) sealed()    {}

// Timeout converts TimeoutSeconds, returning 0 when unset.
func (a ApiCall) Timeout() time.Duration {
	if a.TimeoutSeconds == nil || *a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(*a.TimeoutSeconds * float64(time.Second))
}

type Custom struct {
	Handler    string
	Parameters map[string]any
	Chain
}

func (Custom) Kind() Kind { return KindCustom }
func (Custom) sealed()    {}

// Depth returns the length of the longest continuation path, counting a.
func Depth(a Action) int {
	if a == nil {
		return 0
	}
	c := a.Continuations()
	return 1 + max(Depth(c.OnSuccess), Depth(c.OnError))
}

// Walk visits a and every continuation in pre-order, onSuccess before onError.
// Returning false from fn stops the walk.
func Walk(a Action, fn func(Action) bool) bool {
	if a == nil {
		return true
	}
	if !fn(a) {
		return false
	}
	c := a.Continuations()
	return Walk(c.OnSuccess, fn) && Walk(c.OnError, fn)
}
