package videos

import (
	"errors"
	"fmt"

	"github.com/killallgit/digest-api/internal/models"
)

// NotFoundError indicates a video lookup that matched nothing
type NotFoundError struct {
	Key any
}

func NewNotFoundError(key any) *NotFoundError {
	return &NotFoundError{Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("video %v not found", e.Key)
}

// IsNotFound reports whether the error is a video lookup miss
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvalidTransitionError indicates a lifecycle move the state machine
// does not allow
type InvalidTransitionError struct {
	VideoID string
	From    models.VideoStatus
	To      models.VideoStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("video %s cannot move from %s to %s", e.VideoID, e.From, e.To)
}
