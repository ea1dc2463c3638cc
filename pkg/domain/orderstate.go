package domain

import "encoding/json"

// OrderState is the sub-state of the Ordering Flow.
type OrderState struct {
	Step OrderStep `json:"step"`
	Data StepData  `json:"-"`

	// Draft is the order being collected. Nil outside the collecting steps.
	Draft *OrderDraft `json:"draft,omitempty"`

	// Placed is the order just submitted, shown from StepOrderComplete.
	Placed *Order `json:"placed,omitempty"`

	// Orders caches the customer's order history while viewing it.
	Orders []Order `json:"orders,omitempty"`
}

// Transition moves to step with the data describing what was just rendered.
func (o *OrderState) Transition(step OrderStep, data StepData) {
	o.Step = step
	o.Data = data
}

type orderStateAlias OrderState

func (o OrderState) MarshalJSON() ([]byte, error) {
	env, err := encodeStepData(o.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		orderStateAlias
		Data *stepDataEnvelope `json:"data,omitempty"`
	}{orderStateAlias(o), env})
}

func (o *OrderState) UnmarshalJSON(data []byte) error {
	aux := struct {
		*orderStateAlias
		Data *stepDataEnvelope `json:"data"`
	}{orderStateAlias: (*orderStateAlias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	sd, err := decodeStepData(aux.Data)
	if err != nil {
		return err
	}
	o.Data = sd
	return nil
}
