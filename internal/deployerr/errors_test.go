package deployerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFatal(t *testing.T) {
	tests := []struct {
		kind  Kind
		fatal bool
	}{
		{ConfigMissing, true},
		{UploadFailed, false},
		{DeployFailed, true},
		{RegistrationFailed, true},
		{VerificationFailed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.fatal, tt.kind.Fatal())
		})
	}
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("execution reverted")
	err := fmt.Errorf("deploying graffiti: %w", New(DeployFailed, "deploy Graffiti", cause))

	assert.ErrorIs(t, err, ErrDeployFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConfigMissing)
	assert.EqualError(t, err, "deploying graffiti: DeployFailed: deploy Graffiti: execution reverted")

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, DeployFailed, kind)

	var typed *Error
	assert.ErrorAs(t, err, &typed)
	assert.Equal(t, "deploy Graffiti", typed.Op)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "ConfigMissing: unknown network rinkeby", Newf(ConfigMissing, "unknown network %s", "rinkeby").Error())
	assert.Equal(t, "UploadFailed: boom", New(UploadFailed, "", errors.New("boom")).Error())
	assert.Equal(t, "VerificationFailed", ErrVerificationFailed.Error())
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.True(t, IsFatal(errors.New("unclassified")))
	assert.True(t, IsFatal(New(RegistrationFailed, "addConsumer", nil)))
	assert.False(t, IsFatal(New(VerificationFailed, "verify", nil)))
	assert.False(t, IsFatal(fmt.Errorf("wrapped: %w", New(UploadFailed, "pin", nil))))

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
