package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/target/totem-api/internal/domain/model"
)

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", "y"} {
		t.Setenv("TOTEM_TEST_FLAG", v)
		assert.True(t, envBool("TOTEM_TEST_FLAG"), v)
	}
	t.Setenv("TOTEM_TEST_FLAG", "off")
	assert.False(t, envBool("TOTEM_TEST_FLAG"))
}

func TestAccessBuilder(t *testing.T) {
	at := TestTime().Add(time.Hour)
	a := NewAccess("V-1").WithID("7").At(at).Exit().WithDestination("Sala A").WithContact("Rossi").Build()

	assert.Equal(t, "V-1", a.VisitorID)
	assert.Equal(t, "7", a.ID)
	assert.Equal(t, model.ActionExit, a.Action)
	assert.True(t, a.Time().Equal(at))
	assert.Equal(t, "Sala A", a.DestinationPath)
	assert.Equal(t, "Rossi", a.AppointmentContact)
}

func TestFixedTimeFunc(t *testing.T) {
	now := FixedTimeFunc(TestTime())
	assert.Equal(t, TestTime(), now())
}
