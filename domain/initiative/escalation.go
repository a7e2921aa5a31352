package initiative

// CheckEscalatable verifies that exp is a completed discovery experiment that won
func CheckEscalatable(exp *Initiative) error {
	if exp.ItemType != ItemTypeExperiment {
		return violationf(RuleNotEscalatable, "only experiments can be escalated (item type: %s)", exp.ItemType)
	}
	if exp.Phase != PhaseDiscovery {
		return violationf(RuleNotEscalatable, "only discovery experiments can be escalated (current phase: %s)", exp.Phase)
	}
	if exp.Status != StatusCompleted {
		return violationf(RuleNotEscalatable, "experiment must be completed before escalation (current status: %s)", exp.Status)
	}
	if outcome := exp.ExperimentData.Outcome(); outcome != ResultWon {
		return violationf(RuleNotEscalatable, "only won experiments can be escalated (result: %s)", outcome)
	}
	return nil
}

// PlanEscalation builds the delivery feature derived from a won experiment.
// The returned initiative has no id yet; the store assigns it on create.
func PlanEscalation(exp *Initiative) (*Initiative, error) {
	if err := CheckEscalatable(exp); err != nil {
		return nil, err
	}

	feature := &Initiative{
		Title:            exp.Title,
		ProblemStatement: exp.ProblemStatement,
		ItemType:         ItemTypeFeature,
		Phase:            PhaseDelivery,
		Status:           StatusDesign,
		RICE:             exp.RICE,
		OwnerID:          exp.OwnerID,
		ProjectID:        exp.ProjectID,
		ParentID:         exp.ID,
		PeriodType:       exp.PeriodType,
		PeriodValue:      exp.PeriodValue,
		Tags:             append([]string(nil), exp.Tags...),
	}
	if len(feature.Tags) == 0 {
		feature.Tags = nil
	}

	if err := Validate(feature); err != nil {
		return nil, err
	}
	return feature, nil
}
