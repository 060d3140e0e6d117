package geometry

import (
	"encoding/json"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNewMountSetUnits(t *testing.T) {
	_, err := NewMountSet("corner", "furlongs", nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported units")

	ms, err := NewMountSet("corner", Millimeters, map[string]r3.Vector{WheelCenter: {X: 635, Y: 609.6, Z: 215.9}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ms.Units(), test.ShouldEqual, Millimeters)
}

func TestValidateNames(t *testing.T) {
	test.That(t, SampleBasic().ValidateNames(BasicMountNames), test.ShouldBeNil)
	test.That(t, SamplePushrod().ValidateNames(PushrodMountNames), test.ShouldBeNil)

	// The basic sample has no rocker points.
	err := SampleBasic().ValidateNames(PushrodMountNames)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, CamHinge)
	test.That(t, err.Error(), test.ShouldContainSubstring, ShockIn)
}

func TestEffectivePivot(t *testing.T) {
	pivot, err := SamplePushrod().EffectivePivot(UCAFrontIn, UCARearIn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pivot.Y, test.ShouldAlmostEqual, (9.812+9.12)/2)
	test.That(t, pivot.Z, test.ShouldAlmostEqual, (8.875+9.125)/2)

	_, err = SamplePushrod().EffectivePivot(UCAFrontIn, "NoSuchPoint")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSetMount(t *testing.T) {
	ms := SampleBasic()
	ms.SetMount(WheelCenter, r3.Vector{X: 25, Y: 24, Z: 9})
	v, err := ms.Mount(WheelCenter)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Z, test.ShouldAlmostEqual, 9)
}

func TestMountSetJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(SamplePushrod())
	test.That(t, err, test.ShouldBeNil)

	ms, err := ReadMountSet(data)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ms.Name(), test.ShouldEqual, "sample-pushrod")
	test.That(t, ms.Units(), test.ShouldEqual, Inches)
	v, err := ms.Mount(CamHinge)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldResemble, r3.Vector{X: 25, Y: 11, Z: 13})
}

func TestReadMountSetRequiresUnits(t *testing.T) {
	_, err := ReadMountSet([]byte(`{"name": "corner", "mounts": {"Wheel_Center": [25, 24, 8.5]}}`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "units")
}

func TestCheckUnitConsistency(t *testing.T) {
	test.That(t, SamplePushrod().CheckUnitConsistency(), test.ShouldBeNil)

	// One coordinate accidentally entered in millimeters.
	mixed := SamplePushrod()
	mixed.SetMount(WheelCenter, r3.Vector{X: 635, Y: 609.6, Z: 215.9})
	err := mixed.CheckUnitConsistency()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mixed")
}

func TestScaled(t *testing.T) {
	scaled, err := SamplePushrod().Scaled(MillimetersPerInch, Millimeters)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scaled.Units(), test.ShouldEqual, Millimeters)
	v, err := scaled.Mount(WheelCenter)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Y, test.ShouldAlmostEqual, 24*25.4)
}
