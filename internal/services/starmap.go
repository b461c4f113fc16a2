package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/constella-backend/internal/data/graph"
	"github.com/yungbote/constella-backend/internal/platform/logger"
)

const (
	StarGroupKnown   = "known"
	StarGroupMystery = "mystery"

	starColorKnown   = "#00F0FF"
	starColorMystery = "#FFA500"
	starValKnown     = 20
	starValMystery   = 10
)

type StarNode struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Label   string     `json:"label"`
	TopicID *uuid.UUID `json:"topic_id,omitempty"`
	Val     int        `json:"val"`
	Color   string     `json:"color"`
	Group   string     `json:"group"`
}

type StarLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

type StarMap struct {
	Nodes []StarNode `json:"nodes"`
	Links []StarLink `json:"links"`
}

type StarMapService interface {
	// StarMap returns the user's discovered topics and their one-hop
	// neighbours. Neighbours not yet discovered are "mystery" stars.
	StarMap(ctx context.Context, userID uuid.UUID, language string) (*StarMap, error)
}

type starMapService struct {
	log        *logger.Logger
	discovery  DiscoveryService
	graph      graph.Store
	translator NameTranslator
}

func NewStarMapService(baseLog *logger.Logger, discovery DiscoveryService, store graph.Store, translator NameTranslator) StarMapService {
	return &starMapService{
		log:        baseLog.With("service", "StarMapService"),
		discovery:  discovery,
		graph:      store,
		translator: translator,
	}
}

func (s *starMapService) StarMap(ctx context.Context, userID uuid.UUID, language string) (*StarMap, error) {
	out := &StarMap{Nodes: []StarNode{}, Links: []StarLink{}}

	entries, err := s.discovery.ShipLog(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return out, nil
	}
	known := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := known[e.Name]; ok {
			continue
		}
		known[e.Name] = struct{}{}
		names = append(names, e.Name)
	}

	sub, err := s.graph.Neighborhood(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("graph neighborhood: %w", err)
	}

	labelNames := make([]string, 0, len(sub.Nodes))
	for _, n := range sub.Nodes {
		labelNames = append(labelNames, n.Name)
	}
	labels := map[string]string{}
	if s.translator != nil {
		labels = s.translator.TranslateNames(ctx, labelNames, language)
	}

	for _, n := range sub.Nodes {
		node := StarNode{
			ID:    n.Name,
			Name:  n.Name,
			Label: n.Name,
			Val:   starValMystery,
			Color: starColorMystery,
			Group: StarGroupMystery,
		}
		if l, ok := labels[n.Name]; ok && l != "" {
			node.Label = l
		}
		if n.TopicID != uuid.Nil {
			id := n.TopicID
			node.TopicID = &id
		}
		if _, ok := known[n.Name]; ok {
			node.Val = starValKnown
			node.Color = starColorKnown
			node.Group = StarGroupKnown
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range sub.Edges {
		_, srcKnown := known[e.Source]
		_, dstKnown := known[e.Target]
		if !srcKnown && !dstKnown {
			continue
		}
		out.Links = append(out.Links, StarLink{Source: e.Source, Target: e.Target, Type: e.Type})
	}
	return out, nil
}
