package participant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_BuiltinProfiles(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"philosopher", "scientist"}, r.IDs())

	p, err := r.Lookup("scientist")
	require.NoError(t, err)
	assert.Equal(t, "Scientist", p.Name)
	assert.Equal(t, "Research Scientist", p.Persona)
	assert.NotEmpty(t, p.SystemPrompt)
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Lookup("economist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParticipant)
	assert.Contains(t, err.Error(), "economist")
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Profile{ID: "engineer", Name: "Engineer", Persona: "Systems Engineer"})
	require.NoError(t, err)

	p, err := r.Lookup("engineer")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", p.Name)
}

func TestRegistry_Register_Invalid(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Profile{Name: "No ID"})
	assert.ErrorIs(t, err, ErrInvalidProfile)

	err = r.Register(Profile{ID: "no-name"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestRegistry_Register_Replaces(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Profile{ID: "scientist", Name: "Old"}))
	require.NoError(t, r.Register(Profile{ID: "scientist", Name: "New"}))

	p, err := r.Lookup("scientist")
	require.NoError(t, err)
	assert.Equal(t, "New", p.Name)
}

func TestRegistry_Resolve(t *testing.T) {
	r := DefaultRegistry()

	profiles, err := r.Resolve([]string{"philosopher", "scientist"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Philosopher", profiles[0].Name)
	assert.Equal(t, "Scientist", profiles[1].Name)
}

func TestRegistry_Resolve_UnknownFailsFast(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Resolve([]string{"scientist", "economist"})
	assert.ErrorIs(t, err, ErrUnknownParticipant)
}
