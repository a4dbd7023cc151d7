package chain

import "fmt"

// CorruptPolicy decides what happens when the chain artifact cannot be parsed.
type CorruptPolicy string

const (
	// FailOpen logs the corruption and carries on with an empty chain. The
	// next append then overwrites the artifact; its bytes survive in the backup.
	FailOpen CorruptPolicy = "fail-open"
	// FailClosed surfaces storage.ErrCorruptChain to every operation.
	FailClosed CorruptPolicy = "fail-closed"
)

func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch CorruptPolicy(s) {
	case FailOpen, "":
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	}
	return "", fmt.Errorf("chain: unknown corrupt policy %q", s)
}
