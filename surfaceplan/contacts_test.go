package surfaceplan

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/legplan/contactplan/referenceframe"
)

func TestLegSideForPhase(t *testing.T) {
	sides := []LegSide{}
	for i := 0; i < 4; i++ {
		sides = append(sides, LegSideForPhase(i))
	}
	test.That(t, sides, test.ShouldResemble, []LegSide{Left, Right, Left, Right})
	test.That(t, Left.String(), test.ShouldEqual, "left")
	test.That(t, Right.String(), test.ShouldEqual, "right")
}

func TestContactQuery(t *testing.T) {
	engine := &fakeCollisions{}
	engine.set(0, Left, Contact{"floor", square(0, 0, 0, 1)}, Contact{"step", nil})
	adapter := NewContactQueryAdapter(engine)
	cfg := referenceframe.NewConfiguration(0, 0, 0, 0, 0, 0, 1)

	t.Run("pairs names with geometries", func(t *testing.T) {
		contacts, err := adapter.Query(cfg, Left)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, contacts, test.ShouldResemble, []Contact{{"floor", square(0, 0, 0, 1)}, {"step", nil}})
	})

	t.Run("no collision", func(t *testing.T) {
		contacts, err := adapter.Query(cfg, Right)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, contacts, test.ShouldBeEmpty)
	})

	t.Run("mismatched answers", func(t *testing.T) {
		engine.dropGeometry = true
		defer func() { engine.dropGeometry = false }()
		_, err := adapter.Query(cfg, Left)
		test.That(t, errors.Is(err, ErrContractViolation), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "2 surface names but 1 intersection geometries")
	})
}
