package eventbus

import "reflect"

// KeyOf returns the dispatch key for events of type T.
func KeyOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// TypeName returns the name of the dispatch key of event, or "<nil>".
func TypeName(event any) string {
	t := reflect.TypeOf(event)
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
