// Package search keeps a users index in Elasticsearch for the admin search endpoint.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

const (
	defaultSize = 10
	maxSize     = 50
	timeout     = 3 * time.Second
)

// UserIndex is a no-op when es is nil.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
	log   *logrus.Logger
}

func NewUserIndex(es *elasticsearch.Client, index string, log *logrus.Logger) *UserIndex {
	return &UserIndex{es: es, index: index, log: log}
}

func (x *UserIndex) enabled() bool { return x != nil && x.es != nil && x.index != "" }

type userDoc struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatar_url"`
	Role       string `json:"role"`
	AuthType   string `json:"auth_type"`
	IsVerified bool   `json:"is_verified"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func (d userDoc) toEntity() *entity.User {
	u := &entity.User{
		ID:         d.ID,
		Email:      d.Email,
		Name:       d.Name,
		Avatar:     entity.Avatar{URL: d.AvatarURL},
		Role:       entity.Role(d.Role),
		Identity:   entity.Identity{Type: entity.AuthType(d.AuthType)},
		IsVerified: d.IsVerified,
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, d.CreatedAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return u
}

// Index upserts u. Response errors are logged, transport errors returned.
func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	if !x.enabled() {
		return nil
	}
	b, err := json.Marshal(userDoc{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		AvatarURL:  u.Avatar.URL,
		Role:       string(u.Role),
		AuthType:   string(u.Identity.Type),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		if x.log != nil {
			x.log.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && x.log != nil {
		x.log.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// Search runs a multi_match on email and name. It returns an empty list when search is disabled.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]*entity.User, error) {
	if !x.enabled() {
		return []*entity.User{}, nil
	}
	if size <= 0 || size > maxSize {
		size = defaultSize
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if h.Source.ID == "" {
			h.Source.ID = h.ID
		}
		out = append(out, h.Source.toEntity())
	}
	return out, nil
}
