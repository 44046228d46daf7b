package core

// Serializer shapes feed objects into the payload handed to the external
// platform. Serializers must not reorder the page.
type Serializer interface {
	Serialize(objects []FeedObject) ([]FeedObject, error)
}

// RawSerializer passes feed objects through untouched.
type RawSerializer struct{}

func (RawSerializer) Serialize(objects []FeedObject) ([]FeedObject, error) {
	if objects == nil {
		return []FeedObject{}, nil
	}
	return objects, nil
}

// ProjectionSerializer keeps only the named fields of every object. The id
// field is always kept so downstream deduplication keeps working.
type ProjectionSerializer struct {
	Fields []string
}

func (s ProjectionSerializer) Serialize(objects []FeedObject) ([]FeedObject, error) {
	out := make([]FeedObject, 0, len(objects))
	for _, obj := range objects {
		projected := FeedObject{}
		if id, ok := obj["id"]; ok {
			projected["id"] = id
		}
		for _, field := range s.Fields {
			if value, ok := obj[field]; ok {
				projected[field] = value
			}
		}
		out = append(out, projected)
	}
	return out, nil
}

var (
	_ Serializer = RawSerializer{}
	_ Serializer = ProjectionSerializer{}
)
