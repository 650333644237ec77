package registry

import "cortex-backend/domain/core/entities"

// Role names make up the controlled vocabulary for synapse creation.
const (
	RoleAuthor    = "author"
	RoleCommentOf = "comment_of"
	RoleTaggedAs  = "tagged_as"
	RoleFollows   = "follows"
	RoleMemberOf  = "member_of"
	RoleRelated   = "related"
	RoleCreatedBy = "created_by"
	RoleOwnedBy   = "owned_by"
)

// Each kind contributes the rules for which it is the source. The
// contributions below are merged by NewDefaultRegistry.

func userRules() []Rule {
	return []Rule{
		{SourceKind: entities.KindUser, TargetKind: entities.KindPost, Role: RoleAuthor, Direction: entities.DirectionOut},
		{SourceKind: entities.KindUser, TargetKind: entities.KindComment, Role: RoleAuthor, Direction: entities.DirectionOut},
		{SourceKind: entities.KindUser, TargetKind: entities.KindUser, Role: RoleFollows, Direction: entities.DirectionOut},
		{SourceKind: entities.KindUser, TargetKind: entities.KindUser, Role: RoleCreatedBy, Direction: entities.DirectionOut},
	}
}

func postRules() []Rule {
	return []Rule{
		{SourceKind: entities.KindPost, TargetKind: entities.KindTag, Role: RoleTaggedAs, Direction: entities.DirectionOut},
		{SourceKind: entities.KindPost, TargetKind: entities.KindPost, Role: RoleRelated, Direction: entities.DirectionUndirected},
		{SourceKind: entities.KindPost, TargetKind: entities.KindUser, Role: RoleCreatedBy, Direction: entities.DirectionOut},
		{SourceKind: entities.KindPost, TargetKind: entities.KindUser, Role: RoleOwnedBy, Direction: entities.DirectionOut},
	}
}

func commentRules() []Rule {
	return []Rule{
		{SourceKind: entities.KindComment, TargetKind: entities.KindPost, Role: RoleCommentOf, Direction: entities.DirectionOut},
		{SourceKind: entities.KindComment, TargetKind: entities.KindComment, Role: RoleCommentOf, Direction: entities.DirectionOut},
		{SourceKind: entities.KindComment, TargetKind: entities.KindUser, Role: RoleCreatedBy, Direction: entities.DirectionOut},
	}
}

func tagRules() []Rule {
	return []Rule{
		{SourceKind: entities.KindTag, TargetKind: entities.KindTag, Role: RoleMemberOf, Direction: entities.DirectionOut},
		{SourceKind: entities.KindTag, TargetKind: entities.KindTag, Role: RoleRelated, Direction: entities.DirectionUndirected},
		{SourceKind: entities.KindTag, TargetKind: entities.KindUser, Role: RoleCreatedBy, Direction: entities.DirectionOut},
	}
}
