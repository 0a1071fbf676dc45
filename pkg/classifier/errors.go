package classifier

import "errors"

var (
	// ErrUninitializedModel signals a Model that did not come from Forest.Fit.
	// Predicting with one is a programming error and panics with this value.
	ErrUninitializedModel = errors.New("classifier: model used before fit")

	// ErrShapeMismatch is returned when feature rows and labels disagree, or
	// prediction input has a different width than the training data.
	ErrShapeMismatch = errors.New("classifier: shape mismatch")

	// ErrInvalidLabel is returned for negative training labels.
	ErrInvalidLabel = errors.New("classifier: invalid label")
)
