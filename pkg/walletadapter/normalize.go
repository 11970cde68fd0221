package walletadapter

import "fmt"

// NormalizeDelegateResponse accepts a raw wallet response to a single
// signDelegateActions call and returns it in the canonical
// {"signedDelegate": {"delegateAction": ..., "signature": ...}} shape.
// Some wallets respond "flat" ({"delegateAction":..., "signature":...});
// this brings both shapes to the same representation so the builder's
// delegate() path can treat them identically (§4.6, §8 round-trip law).
func NormalizeDelegateResponse(raw map[string]interface{}) (map[string]interface{}, error) {
	if wrapped, ok := raw["signedDelegate"]; ok {
		inner, ok := wrapped.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("walletadapter: signedDelegate is not an object")
		}
		if err := requireDelegateFields(inner); err != nil {
			return nil, err
		}
		return raw, nil
	}

	if err := requireDelegateFields(raw); err == nil {
		return map[string]interface{}{
			"signedDelegate": map[string]interface{}{
				"delegateAction": raw["delegateAction"],
				"signature":      raw["signature"],
			},
		}, nil
	}

	return nil, fmt.Errorf("walletadapter: wallet delegate response has neither a flat nor a wrapped shape")
}

func requireDelegateFields(m map[string]interface{}) error {
	if _, ok := m["delegateAction"]; !ok {
		return fmt.Errorf("walletadapter: missing delegateAction")
	}
	if _, ok := m["signature"]; !ok {
		return fmt.Errorf("walletadapter: missing signature")
	}
	return nil
}
