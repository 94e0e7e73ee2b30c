package main

import (
	"github.com/danmuck/photohandoff/internal/host"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/photo/providers"
)

type itemReport struct {
	Kind   string `json:"kind"`
	Ref    string `json:"ref,omitempty"`
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type screenReport struct {
	Screen string       `json:"screen"`
	Source string       `json:"source"`
	Index  int          `json:"index"`
	Items  []itemReport `json:"items"`
}

func describe(p photo.Provider) itemReport {
	switch v := p.(type) {
	case providers.File:
		return itemReport{Kind: "file", Ref: v.Path}
	case providers.Remote:
		return itemReport{Kind: "remote", Ref: v.URL}
	case providers.Memory:
		return itemReport{Kind: "memory"}
	}
	if photo.IsLoss(p) {
		return itemReport{Kind: "loss"}
	}
	return itemReport{Kind: "unknown"}
}

func reportScreen(s *host.Screen) screenReport {
	c := s.Controller()
	env := c.Envelope()
	out := screenReport{
		Screen: s.ID(),
		Source: string(c.Source()),
		Index:  c.CurrentIndex(),
		Items:  make([]itemReport, 0, env.Len()),
	}
	for _, item := range env.Items {
		out.Items = append(out.Items, describe(item))
	}
	for i, o := range c.Outcomes() {
		if i >= len(out.Items) {
			break
		}
		out.Items[i].Status = string(o.Status)
		out.Items[i].Reason = string(o.Reason)
	}
	return out
}
