package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p EventPayload) Validate() error {
	if p.EventID == "" {
		return errors.New("eventId is required")
	}
	return nil
}

func (p GeneratorPayload) Validate() error {
	if p.Type == "" {
		return errors.New("generator type is required")
	}
	return nil
}

func (p UpgradePayload) Validate() error {
	if p.UpgradeID == "" {
		return errors.New("upgradeId is required")
	}
	return nil
}

func (p ChatPayload) Validate() error {
	if p.Message == "" {
		return errors.New("message cannot be empty")
	}
	if len(p.Message) > 500 {
		return errors.New("message too long")
	}
	return nil
}
