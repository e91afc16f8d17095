package enum

type EntityType string

const (
	INVITATION EntityType = "INVITATION"
	EMAIL      EntityType = "EMAIL"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
