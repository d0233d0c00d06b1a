package plan

import (
	"errors"

	"github.com/harborops/recvplan/core/model"
)

// ErrNotFound is returned when a plan id is unknown to the repository.
var ErrNotFound = errors.New("plan not found")

// Repository is the narrow persistence interface consumed by the engine.
// Implementations must make AcquireActive/ReleaseActive atomic with respect
// to concurrent callers: this pair is what upholds the single in-progress
// plan invariant.
type Repository interface {
	Get(id string) (model.Plan, error)
	Save(p model.Plan) error
	List() ([]model.Plan, error)
	Delete(id string) error

	// AcquireActive claims the station-wide active slot for planID. It
	// returns true when the slot was free or already held by planID.
	AcquireActive(planID string) bool
	// ReleaseActive frees the slot if held by planID.
	ReleaseActive(planID string)
}
