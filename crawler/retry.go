package crawler

// retryOnce runs fn and repeats it a single time when consistent reports the
// first result as suspect. The second result is accepted as-is either way.
func retryOnce[T any](fn func() (T, error), consistent func(T) bool) (T, error) {
	result, err := fn()
	if err != nil || consistent(result) {
		return result, err
	}
	retried, retryErr := fn()
	if retryErr != nil {
		// The first fetch did succeed; keep its result rather than the error.
		return result, nil
	}
	return retried, nil
}
