package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// argumentGetter is satisfied by mcp.CallToolRequest.
type argumentGetter interface {
	GetArguments() map[string]any
}

// bindArguments decodes tool arguments into target using json tags. Clients
// that send every value as a string are accepted: "true", "3" and JSON
// arrays are coerced to the field's type.
func bindArguments[T any](request argumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringCoercion, mapstructure.StringToSliceHookFunc(",")),
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

func stringCoercion(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch {
	case to.Kind() == reflect.Slice && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		ptr := reflect.New(to)
		if err := json.Unmarshal([]byte(raw), ptr.Interface()); err == nil {
			return ptr.Elem().Interface(), nil
		}
	case to.Kind() == reflect.Bool && (raw == "true" || raw == "false"):
		return raw == "true", nil
	case to.Kind() >= reflect.Int && to.Kind() <= reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}
