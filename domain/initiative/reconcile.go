package initiative

// NeedsRepair reports whether i is in a state the delivery board has no lane
// for: delivery items cannot sit in paused.
func NeedsRepair(i *Initiative) bool {
	return i.Phase == PhaseDelivery && i.Status == StatusPaused
}

// RepairPatch is the single-field write that restores a paused delivery item to design
func RepairPatch() Patch {
	return Patch{Status: statusPtr(StatusDesign)}
}
