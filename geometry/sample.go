package geometry

import "github.com/golang/geo/r3"

// SampleBasic returns the built-in basic suspension corner, in inches. The
// shock runs from the PushRodIN chassis mount down to PushRodOUT on the lower
// arm.
func SampleBasic() *MountSet {
	ms, err := NewMountSet("sample-basic", Inches, map[string]r3.Vector{
		UCAFrontIn:  {X: 22, Y: 9.812, Z: 8.875},
		UCARearIn:   {X: 28.75, Y: 9.12, Z: 9.125},
		LCAFrontIn:  {X: 20.5, Y: 10, Z: 4},
		LCARearIn:   {X: 28.75, Y: 9.31, Z: 4},
		PushRodIn:   {X: 25.01, Y: 12.625, Z: 14.75},
		UCAOut:      {X: 25.125, Y: 19, Z: 11.875},
		LCAOut:      {X: 25.095, Y: 20.625, Z: 5.125},
		PushRodOut:  {X: 25.01, Y: 15.8125, Z: 5.75},
		WheelCenter: {X: 25, Y: 24, Z: 8.5},
	})
	if err != nil {
		panic(err)
	}
	return ms
}

// SamplePushrod returns the built-in pushrod suspension corner, in inches. It
// shares the control arms and wheel center of the basic sample and adds the
// rocker mechanism with the shock on top.
func SamplePushrod() *MountSet {
	ms, err := NewMountSet("sample-pushrod", Inches, map[string]r3.Vector{
		UCAFrontIn:  {X: 22, Y: 9.812, Z: 8.875},
		UCARearIn:   {X: 28.75, Y: 9.12, Z: 9.125},
		LCAFrontIn:  {X: 20.5, Y: 10, Z: 4},
		LCARearIn:   {X: 28.75, Y: 9.31, Z: 4},
		PushRodIn:   {X: 25.01, Y: 12.625, Z: 14.75},
		UCAOut:      {X: 25.125, Y: 19, Z: 11.875},
		LCAOut:      {X: 25.095, Y: 20.625, Z: 5.125},
		PushRodOut:  {X: 25, Y: 15.8125, Z: 5.75},
		CamHinge:    {X: 25, Y: 11, Z: 13},
		ShockOut:    {X: 25, Y: 9.5, Z: 15},
		ShockIn:     {X: 25, Y: 5, Z: 12},
		WheelCenter: {X: 25, Y: 24, Z: 8.5},
	})
	if err != nil {
		panic(err)
	}
	return ms
}
