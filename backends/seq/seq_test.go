package seq

import (
	"testing"

	"github.com/gomlx/forall/backends"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) Begin(g backends.Geometry) error {
	r.events = append(r.events, "begin")
	return nil
}

func (r *recorder) GroupDone(group int) { r.events = append(r.events, "group") }

func (r *recorder) End() { r.events = append(r.events, "end") }

func TestLaunch(t *testing.T) {
	p := New("")
	exec := p.Executor()
	assert.Equal(t, backends.Sequential, exec.Kind())
	assert.Equal(t, BackendName, exec.Name())

	g := exec.Plan(10, p.LaunchConfig())
	assert.Equal(t, 1, g.Groups)
	assert.Equal(t, 1, g.Slots)

	var order []int
	rec := &recorder{}
	require.NoError(t, exec.Launch(g, func(lane backends.Lane, pos int) {
		assert.Equal(t, backends.Lane{}, lane)
		order = append(order, pos)
	}, rec))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	assert.Equal(t, []string{"begin", "group", "end"}, rec.events)
}

func TestConfig(t *testing.T) {
	assert.Panics(t, func() { New("workers=2") })
	assert.Equal(t, "seq", Policy{}.String())
}
