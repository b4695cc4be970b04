package action

import (
	"encoding/json"
	"fmt"

	uiflow "github.com/goliatone/go-uiflow"
)

// Serialize is the inverse of Parse: Parse(Serialize(a)) equals a. Zero
// optional fields are omitted.
func Serialize(a Action) map[string]any {
	if a == nil {
		return nil
	}
	out := map[string]any{FieldAction: string(a.Kind())}
	switch v := a.(type) {
	case Navigate:
		out[FieldTarget] = v.Target
		if v.Replace {
			out[FieldReplace] = true
		}
		putMap(out, FieldArguments, v.Arguments)
	case SetState:
		updates := uiflow.CopyMap(v.Updates)
		if updates == nil {
			updates = map[string]any{}
		}
		out[FieldUpdates] = updates
	case ApiCall:
		out[FieldMethod] = string(v.Method)
		out[FieldEndpoint] = v.Endpoint
		if v.Body != nil {
			out[FieldBody] = uiflow.DeepCopy(v.Body)
		}
		putMap(out, FieldQueryParams, v.QueryParams)
		if v.Headers != nil {
			headers := make(map[string]any, len(v.Headers))
			for k, h := range v.Headers {
				headers[k] = h
			}
			out[FieldHeaders] = headers
		}
		if v.TimeoutSeconds != nil {
			out[FieldTimeout] = *v.TimeoutSeconds
		}
	case Custom:
		out[FieldHandler] = v.Handler
		putMap(out, FieldParameters, v.Parameters)
	default:
		panic(fmt.Sprintf("action: unhandled variant %T", a))
	}

	c := a.Continuations()
	if c.OnSuccess != nil {
		out[FieldOnSuccess] = Serialize(c.OnSuccess)
	}
	if c.OnError != nil {
		out[FieldOnError] = Serialize(c.OnError)
	}
	return out
}

// Marshal encodes a as JSON.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(Serialize(a))
}

func putMap(out map[string]any, key string, m map[string]any) {
	if m != nil {
		out[key] = uiflow.CopyMap(m)
	}
}
