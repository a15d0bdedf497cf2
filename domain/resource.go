package domain

// ResourceState tags a Resource.
type ResourceState int

const (
	ResourceLoading ResourceState = iota
	ResourceSuccess
	ResourceError
)

func (s ResourceState) String() string {
	switch s {
	case ResourceSuccess:
		return "success"
	case ResourceError:
		return "error"
	default:
		return "loading"
	}
}

// Resource is a loading, success or error result. Data is optional in every
// state; Message and Cause are only set on errors.
type Resource[T any] struct {
	State   ResourceState
	Data    *T
	Message string
	Cause   error
}

func Loading[T any](data *T) Resource[T] {
	return Resource[T]{State: ResourceLoading, Data: data}
}

func Success[T any](data *T) Resource[T] {
	return Resource[T]{State: ResourceSuccess, Data: data}
}

func Failure[T any](message string, cause error, data *T) Resource[T] {
	return Resource[T]{State: ResourceError, Data: data, Message: message, Cause: cause}
}

// Err returns the cause of an error resource, nil otherwise.
func (r Resource[T]) Err() error {
	if r.State != ResourceError {
		return nil
	}
	return r.Cause
}
