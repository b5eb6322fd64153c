package contracts

import "errors"

// ⭐ SSOT: 파이프라인 에러 분류는 여기서만
// Callers branch with errors.Is; wrapped errors keep the sentinel.
var (
	// ErrNoDocs the input document set is empty (global precondition)
	ErrNoDocs = errors.New("no_docs")

	// ErrInsufficientEvidence not enough eligible themes to fill the requested top-N
	ErrInsufficientEvidence = errors.New("insufficient_evidence")

	// ErrLockConflict another pipeline run holds the global lock ("try later")
	ErrLockConflict = errors.New("lock_conflict")

	// ErrInvalidHypotheses malformed hypothesis set (e.g. duplicate IDs)
	ErrInvalidHypotheses = errors.New("invalid_hypotheses")

	// ErrInvalidProbability probability outside [0, 1] or NaN
	ErrInvalidProbability = errors.New("invalid_probability")
)

// IsPrecondition reports whether err is a fatal run precondition failure
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoDocs) || errors.Is(err, ErrInsufficientEvidence)
}
