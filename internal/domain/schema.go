package domain

import (
	"reflect"
	"strings"
	"time"
)

// FieldSchema describes one JSON field of a model or request body.
type FieldSchema struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Nullable bool     `json:"nullable,omitempty"`
	Rules    string   `json:"rules,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

var (
	timeType = reflect.TypeOf(time.Time{})

	enums = map[reflect.Type][]string{
		reflect.TypeOf(Difficulty("")): {string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard)},
		reflect.TypeOf(StepStatus("")): {string(StepPending), string(StepInProgress), string(StepDone)},
	}
)

// Models describes the stored documents, keyed by model name.
func Models() map[string][]FieldSchema {
	return map[string][]FieldSchema{
		"problem":      DescribeFields(Problem{}),
		"session":      DescribeFields(Session{}),
		"guidancestep": DescribeFields(GuidanceStep{}),
		"message":      DescribeFields(Message{}),
	}
}

// Requests describes the accepted request bodies, keyed by operation.
func Requests() map[string][]FieldSchema {
	return map[string][]FieldSchema{
		"create_problem":   DescribeFields(CreateProblemRequest{}),
		"create_session":   DescribeFields(CreateSessionRequest{}),
		"update_step":      DescribeFields(UpdateStepRequest{}),
		"set_current_step": DescribeFields(SetCurrentStepRequest{}),
		"add_message":      DescribeFields(AddMessageRequest{}),
	}
}

// DescribeFields lists the JSON fields of struct v in declaration order,
// reading names from json tags and constraints from validate tags.
func DescribeFields(v any) []FieldSchema {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]FieldSchema, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		rules := f.Tag.Get("validate")
		fs := FieldSchema{
			Name:     name,
			Required: hasRule(rules, "required"),
			Rules:    rules,
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			fs.Nullable = true
			ft = ft.Elem()
		}
		fs.Type = typeName(ft)
		fs.Enum = enums[ft]
		fields = append(fields, fs)
	}
	return fields
}

func typeName(t reflect.Type) string {
	if t == timeType {
		return "datetime"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array<" + typeName(t.Elem()) + ">"
	case reflect.Pointer:
		return typeName(t.Elem())
	case reflect.Struct:
		return strings.ToLower(t.Name())
	default:
		return "object"
	}
}

func hasRule(tag, rule string) bool {
	for _, r := range strings.Split(tag, ",") {
		if r == rule {
			return true
		}
	}
	return false
}
