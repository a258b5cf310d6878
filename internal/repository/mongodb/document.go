package mongodb

import (
	"fmt"
	"time"

	"github.com/praio-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// naiveISO matches offset-less ISO timestamps, read as UTC
const naiveISO = "2006-01-02T15:04:05.999999999"

// voteDocument is a stored vote as read back. Older documents carry an
// ObjectID _id and an ISO string timestamp without offset.
type voteDocument struct {
	ID        bson.RawValue            `bson:"_id"`
	PointID   string                   `bson:"praia_id"`
	UserID    string                   `bson:"user_id"`
	Votes     map[string]bson.RawValue `bson:"votos"`
	Timestamp bson.RawValue            `bson:"timestamp"`
}

func (d voteDocument) toDomain() (*domain.VoteRecord, error) {
	id, err := documentID(d.ID)
	if err != nil {
		return nil, err
	}

	at, err := documentTime(d.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("vote %s: %w", id, err)
	}

	scores := make(map[domain.Criterion]int, len(domain.Criteria))
	var missing []domain.Criterion
	for _, c := range domain.Criteria {
		raw, ok := d.Votes[string(c)]
		if !ok {
			missing = append(missing, c)
			continue
		}
		v, ok := raw.AsInt64OK()
		if !ok {
			return nil, fmt.Errorf("vote %s: %s is not a number", id, c)
		}
		scores[c] = int(v)
	}

	return &domain.VoteRecord{
		ID:          id,
		PointID:     d.PointID,
		UserID:      d.UserID,
		Scores:      domain.ScoresFromMap(scores),
		SubmittedAt: at,
		Missing:     missing,
	}, nil
}

func documentID(v bson.RawValue) (string, error) {
	if s, ok := v.StringValueOK(); ok {
		return s, nil
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex(), nil
	}
	return "", fmt.Errorf("unsupported vote _id type %s", v.Type)
}

func documentTime(v bson.RawValue) (time.Time, error) {
	if t, ok := v.TimeOK(); ok {
		return t.UTC(), nil
	}
	s, ok := v.StringValueOK()
	if !ok {
		return time.Time{}, fmt.Errorf("unsupported timestamp type %s", v.Type)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(naiveISO, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", s, err)
	}
	return t, nil
}
