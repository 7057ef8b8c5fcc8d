package welcome

import "strings"

// Variable is one placeholder key and its replacement
type Variable struct {
	Key   string
	Value string
}

// Variables is an ordered set of template variables.
// Order matters to Resolve; keys are unique.
type Variables []Variable

// Set replaces the value of key, or appends it if key is new
func (v *Variables) Set(key, value string) {
	for i := range *v {
		if (*v)[i].Key == key {
			(*v)[i].Value = value
			return
		}
	}
	*v = append(*v, Variable{Key: key, Value: value})
}

// Lookup returns the value of key
func (v Variables) Lookup(key string) (string, bool) {
	for _, kv := range v {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Resolve replaces every "{key}" in template with its value, for each
// variable in order. Dotted keys such as "user.mention" are matched literally.
// Placeholders with no variable are left untouched.
//
// Values are not escaped: when a value contains "{other}", a variable that
// comes later in vars will replace it and one that came earlier will not.
func Resolve(template string, vars Variables) string {
	if template == "" {
		return ""
	}
	out := template
	for _, kv := range vars {
		out = strings.ReplaceAll(out, "{"+kv.Key+"}", kv.Value)
	}
	return out
}
