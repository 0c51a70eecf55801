package deployerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of a deployment run.
type Kind string

const (
	// ConfigMissing means the network is unknown or a required parameter or credential is absent.
	ConfigMissing Kind = "ConfigMissing"
	// UploadFailed means a pinning request for an asset or its metadata failed.
	UploadFailed Kind = "UploadFailed"
	// DeployFailed means a deployment transaction or mock provisioning reverted or hit an RPC error.
	DeployFailed Kind = "DeployFailed"
	// RegistrationFailed means consumer registration on the local oracle failed.
	RegistrationFailed Kind = "RegistrationFailed"
	// VerificationFailed means the public source verification call failed.
	VerificationFailed Kind = "VerificationFailed"
)

// Fatal reports whether a failure of this kind aborts the run.
func (k Kind) Fatal() bool {
	switch k {
	case UploadFailed, VerificationFailed:
		return false
	default:
		return true
	}
}

// Sentinels for errors.Is checks.
var (
	ErrConfigMissing      = &Error{Kind: ConfigMissing}
	ErrUploadFailed       = &Error{Kind: UploadFailed}
	ErrDeployFailed       = &Error{Kind: DeployFailed}
	ErrRegistrationFailed = &Error{Kind: RegistrationFailed}
	ErrVerificationFailed = &Error{Kind: VerificationFailed}
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDeployFailed) holds for every
// deploy failure regardless of its cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Op: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsFatal reports whether err should abort a run. Unclassified errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	return kind.Fatal()
}
