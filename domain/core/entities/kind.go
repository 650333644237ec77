package entities

// Kind is the discriminator that places an entity in the polymorphic
// collection. The set is closed at compile time but extensible by
// adding a constant here and a rule contribution in the registry.
type Kind string

const (
	KindUser    Kind = "user"
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindTag     Kind = "tag"
	KindSynapse Kind = "synapse"
)

var registeredKinds = map[Kind]bool{
	KindUser:    true,
	KindPost:    true,
	KindComment: true,
	KindTag:     true,
	KindSynapse: true,
}

// IsRegisteredKind reports whether k belongs to the registered kind set
func IsRegisteredKind(k Kind) bool {
	return registeredKinds[k]
}

// RegisteredKinds returns all registered kinds
func RegisteredKinds() []Kind {
	kinds := make([]Kind, 0, len(registeredKinds))
	for k := range registeredKinds {
		kinds = append(kinds, k)
	}
	return kinds
}
