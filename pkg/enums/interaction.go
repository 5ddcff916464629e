package enums

import "fmt"

// InteractionType labels a product interaction signal fed to the
// recommendation service.
type InteractionType string

const (
	InteractionTypeView     InteractionType = "view"
	InteractionTypeCart     InteractionType = "cart"
	InteractionTypePurchase InteractionType = "purchase"
)

var validInteractionTypes = []InteractionType{
	InteractionTypeView,
	InteractionTypeCart,
	InteractionTypePurchase,
}

func (t InteractionType) String() string {
	return string(t)
}

func (t InteractionType) IsValid() bool {
	for _, valid := range validInteractionTypes {
		if t == valid {
			return true
		}
	}
	return false
}

func ParseInteractionType(raw string) (InteractionType, error) {
	interaction := InteractionType(raw)
	if !interaction.IsValid() {
		return "", fmt.Errorf("invalid interaction type %q", raw)
	}
	return interaction, nil
}
