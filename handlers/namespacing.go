package handlers

import "strings"

// NamespaceSeparator joins a namespace and a handler name.
const NamespaceSeparator = "::"

// DefaultNamespace concatenates namespace and id using ::, trimming whitespace.
func DefaultNamespace(namespace, id string) string {
	ns := strings.TrimSpace(namespace)
	ident := strings.TrimSpace(id)
	if ns == "" {
		return ident
	}
	return ns + NamespaceSeparator + ident
}

// SplitNamespace is the inverse of DefaultNamespace.
func SplitNamespace(key string) (namespace, id string) {
	if i := strings.LastIndex(key, NamespaceSeparator); i >= 0 {
		return key[:i], key[i+len(NamespaceSeparator):]
	}
	return "", key
}
