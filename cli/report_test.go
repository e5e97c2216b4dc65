package cli

import (
	"bytes"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/legplan/contactplan/spatialmath"
	"github.com/legplan/contactplan/surfaceplan"
)

func TestCandidateStats(t *testing.T) {
	mean, maximum, err := candidateStats([]int{1, 2, 1, 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mean, test.ShouldEqual, 2)
	test.That(t, maximum, test.ShouldEqual, 4)

	mean, maximum, err = candidateStats(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mean, test.ShouldEqual, 0)
	test.That(t, maximum, test.ShouldEqual, 0)
}

func TestWriteReport(t *testing.T) {
	square := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}
	yaw90 := spatialmath.QuatToRotationMatrix(spatialmath.QuatFromXYZW(0, 0, 0.7071067811865476, 0.7071067811865476))
	seq, err := surfaceplan.Assemble(
		[]*spatialmath.RotationMatrix{spatialmath.NewIdentityRotationMatrix(), yaw90},
		[][][]r3.Vector{{square}, {square, square}},
	)
	test.That(t, err, test.ShouldBeNil)

	var out bytes.Buffer
	test.That(t, writeReport(&out, []pathSequence{{PathID: 3, Sequence: seq}}), test.ShouldBeNil)
	report := out.String()
	test.That(t, report, test.ShouldContainSubstring, "path 3")
	test.That(t, report, test.ShouldContainSubstring, "left")
	test.That(t, report, test.ShouldContainSubstring, "right")
	test.That(t, report, test.ShouldContainSubstring, "90.0")
	test.That(t, report, test.ShouldContainSubstring, "2.000")
	test.That(t, report, test.ShouldContainSubstring, "phases: 2, candidates per phase: mean 1.50, max 2")
	// one histogram line per bin
	test.That(t, report, test.ShouldContainSubstring, "50%")

	out.Reset()
	empty, err := surfaceplan.Assemble(nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, writeReport(&out, []pathSequence{{PathID: -1, Sequence: empty}}), test.ShouldBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "phases: 0")
}
