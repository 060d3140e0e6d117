package geometry

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Units are the linear units of a mount set. They are declared explicitly,
// never inferred; mixing units within one topology is a configuration error.
type Units string

// The supported linear units.
const (
	Inches      = Units("in")
	Millimeters = Units("mm")
)

// MillimetersPerInch converts between the two supported units.
const MillimetersPerInch = 25.4

// Mount point names shared by the suspension topology variants. The names
// follow the column headers of the source spreadsheets.
const (
	UCAFrontIn  = "UCA_FrontIN"
	UCARearIn   = "UCA_RearIN"
	LCAFrontIn  = "LCA_FrontIN"
	LCARearIn   = "LCA_RearIN"
	PushRodIn   = "PushRodIN"
	UCAOut      = "UCA_OUT"
	LCAOut      = "LCA_OUT"
	PushRodOut  = "PushRodOUT"
	CamHinge    = "Cam_Hinge"
	ShockOut    = "Shock_OUT"
	ShockIn     = "Shock_IN"
	WheelCenter = "Wheel_Center"
)

// BasicMountNames are the points a basic (shock-on-lower-arm) topology
// requires. PushRodIn/PushRodOut double as the shock's chassis and lower-arm
// ends for this variant.
var BasicMountNames = []string{
	UCAFrontIn, UCARearIn, LCAFrontIn, LCARearIn,
	PushRodIn, UCAOut, LCAOut, PushRodOut, WheelCenter,
}

// PushrodMountNames are the points a pushrod (bell-crank actuated) topology
// requires.
var PushrodMountNames = []string{
	UCAFrontIn, UCARearIn, LCAFrontIn, LCARearIn,
	PushRodIn, UCAOut, LCAOut, PushRodOut,
	CamHinge, ShockOut, ShockIn, WheelCenter,
}

// Member is a rigid connection between two named mounts, used by
// visualization consumers. The kinematic links are derived separately.
type Member struct {
	From string
	To   string
}

// BasicMembers is the visual connectivity of the basic topology.
var BasicMembers = []Member{
	{UCAFrontIn, UCAOut},
	{UCARearIn, UCAOut},
	{LCAFrontIn, LCAOut},
	{LCARearIn, LCAOut},
	{PushRodIn, PushRodOut},
}

// PushrodMembers is the visual connectivity of the pushrod topology.
var PushrodMembers = []Member{
	{UCAFrontIn, UCAOut},
	{UCARearIn, UCAOut},
	{LCAFrontIn, LCAOut},
	{LCARearIn, LCAOut},
	{PushRodIn, PushRodOut},
	{PushRodIn, CamHinge},
	{PushRodIn, ShockOut},
	{ShockOut, ShockIn},
	{CamHinge, ShockOut},
	{UCAOut, WheelCenter},
	{LCAOut, WheelCenter},
}

// unitRatioLimit is the largest plausible ratio between the largest and
// smallest mount distances from the origin within one consistent-unit set.
const unitRatioLimit = 20.0

// MountSet is the named 3D mount coordinates of one suspension corner, in one
// consistent linear unit. Each analysis session owns its mount set
// exclusively; derived reference geometry must be rebuilt after any edit.
type MountSet struct {
	name   string
	units  Units
	mounts map[string]r3.Vector
}

// NewMountSet builds a mount set from named coordinates. The units must be
// one of the supported linear units.
func NewMountSet(name string, units Units, mounts map[string]r3.Vector) (*MountSet, error) {
	if units != Inches && units != Millimeters {
		return nil, errors.Errorf("unsupported units %q (want %q or %q)", units, Inches, Millimeters)
	}
	copied := make(map[string]r3.Vector, len(mounts))
	for n, v := range mounts {
		copied[n] = v
	}
	return &MountSet{name: name, units: units, mounts: copied}, nil
}

// Name returns the mount set's name.
func (ms *MountSet) Name() string {
	return ms.name
}

// Units returns the declared linear units.
func (ms *MountSet) Units() Units {
	return ms.units
}

// MountNames returns the sorted names present in the set.
func (ms *MountSet) MountNames() []string {
	names := make([]string, 0, len(ms.mounts))
	for n := range ms.mounts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Mount returns the 3D coordinate of a named mount.
func (ms *MountSet) Mount(name string) (r3.Vector, error) {
	v, ok := ms.mounts[name]
	if !ok {
		return r3.Vector{}, errors.Errorf("mount set %q has no point named %q", ms.name, name)
	}
	return v, nil
}

// SetMount replaces one mount coordinate. Reference geometry previously
// derived from this set is stale afterwards and must be recomputed.
func (ms *MountSet) SetMount(name string, coord r3.Vector) {
	ms.mounts[name] = coord
}

// Planar returns the front-view projection of a named mount.
func (ms *MountSet) Planar(name string) (Point, error) {
	v, err := ms.Mount(name)
	if err != nil {
		return Point{}, err
	}
	return Project(v), nil
}

// EffectivePivot returns the front-view projection of the midpoint of two
// mounts, collapsing an A-arm's dual chassis bushings into one planar pivot.
func (ms *MountSet) EffectivePivot(a, b string) (Point, error) {
	va, err := ms.Mount(a)
	if err != nil {
		return Point{}, err
	}
	vb, err := ms.Mount(b)
	if err != nil {
		return Point{}, err
	}
	return Project(Midpoint(va, vb)), nil
}

// ValidateNames checks that every required mount name is present, aggregating
// all missing names into one error.
func (ms *MountSet) ValidateNames(required []string) error {
	var err error
	for _, name := range required {
		if _, ok := ms.mounts[name]; !ok {
			err = multierr.Combine(err, errors.Errorf("mount set %q missing required point %q", ms.name, name))
		}
	}
	return err
}

// CheckUnitConsistency is a best-effort screen for mixed units: within one
// corner all mounts sit at the same order of magnitude from the origin, so an
// implausible spread suggests some coordinates were entered in the wrong
// unit. A passing check is not a guarantee.
func (ms *MountSet) CheckUnitConsistency() error {
	minNorm := math.Inf(1)
	maxNorm := 0.0
	for _, v := range ms.mounts {
		n := v.Norm()
		if n < degenerateEps {
			continue
		}
		minNorm = math.Min(minNorm, n)
		maxNorm = math.Max(maxNorm, n)
	}
	if maxNorm > 0 && maxNorm/minNorm > unitRatioLimit {
		return errors.Errorf(
			"mount set %q coordinate magnitudes spread by %.0fx; mixed %q/%q units suspected",
			ms.name, maxNorm/minNorm, Inches, Millimeters)
	}
	return nil
}

// Scaled returns a copy of the mount set with every coordinate multiplied by
// factor and the given units. Used to convert between inches and millimeters.
func (ms *MountSet) Scaled(factor float64, units Units) (*MountSet, error) {
	scaled := make(map[string]r3.Vector, len(ms.mounts))
	for n, v := range ms.mounts {
		scaled[n] = v.Mul(factor)
	}
	return NewMountSet(ms.name, units, scaled)
}

type mountSetJSON struct {
	Name   string                `json:"name"`
	Units  Units                 `json:"units"`
	Mounts map[string][3]float64 `json:"mounts"`
}

// ReadMountSet parses a mount set from its JSON form. Coordinates are
// [x, y, z] triples and units are mandatory.
func ReadMountSet(data []byte) (*MountSet, error) {
	var parsed mountSetJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrap(err, "cannot parse mount set")
	}
	if parsed.Units == "" {
		return nil, errors.New("mount set is missing required \"units\" field")
	}
	mounts := make(map[string]r3.Vector, len(parsed.Mounts))
	for n, c := range parsed.Mounts {
		mounts[n] = r3.Vector{X: c[0], Y: c[1], Z: c[2]}
	}
	return NewMountSet(parsed.Name, parsed.Units, mounts)
}

// MarshalJSON serializes the mount set to the same form ReadMountSet parses.
func (ms *MountSet) MarshalJSON() ([]byte, error) {
	out := mountSetJSON{
		Name:   ms.name,
		Units:  ms.units,
		Mounts: make(map[string][3]float64, len(ms.mounts)),
	}
	for n, v := range ms.mounts {
		out.Mounts[n] = [3]float64{v.X, v.Y, v.Z}
	}
	return json.Marshal(out)
}
