package httpapi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BillSync/internal/domain"
)

func TestValidateSyncRequestFieldNames(t *testing.T) {
	t.Parallel()

	err := validateSyncRequest(syncRequest{States: []string{"ca", "texas"}})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "states[1]", verr.Field)
	assert.Equal(t, "must be a two-letter jurisdiction code", verr.Message)

	err = validateSyncRequest(syncRequest{State: "ca", Limit: 5000})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "limit", verr.Field)

	err = validateSyncRequest(syncRequest{})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "state", verr.Field)
}

func TestSyncRequestCodesPrefersStates(t *testing.T) {
	t.Parallel()

	req := syncRequest{State: "ca", States: []string{"tx", "ny"}}
	assert.Equal(t, []string{"tx", "ny"}, req.codes())
	assert.Equal(t, []string{"ca"}, syncRequest{State: "ca"}.codes())
	assert.Nil(t, syncRequest{}.codes())
}
