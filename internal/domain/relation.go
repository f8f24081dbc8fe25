package domain

// RelationType names the kind of edge between a ticket and another entity.
type RelationType string

const (
	RelationAffectedVersion RelationType = "AffectedVersion"
	RelationFixedVersion    RelationType = "FixedVersion"
	RelationComponent       RelationType = "Component"
	RelationDuplicated      RelationType = "Duplicated"
	RelationBlock           RelationType = "Block"
	RelationRelated         RelationType = "Relation"
)

// TicketRelation is a directed, typed edge owned by the source ticket.
type TicketRelation struct {
	TicketID   string
	TicketType TicketType
	TargetID   string
	TargetType TicketType
	Rel        RelationType
}

// TargetTypeFor returns the entity type a relation of rel points at.
func TargetTypeFor(rel RelationType) TicketType {
	switch rel {
	case RelationAffectedVersion, RelationFixedVersion:
		return TicketTypeVersion
	default:
		return TicketTypeBug
	}
}
