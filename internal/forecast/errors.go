package forecast

import "deliverycore/internal/snapshot"

func invalidInput(op, format string, args ...any) error {
	return snapshot.InvalidInputf(op, format, args...)
}

func notFound(op, format string, args ...any) error {
	return snapshot.NotFoundf(op, format, args...)
}

func internalInvariant(op, format string, args ...any) error {
	return snapshot.InternalInvariantf(op, format, args...)
}
