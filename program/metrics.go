// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	instructions *prometheus.CounterVec
	failed       *prometheus.CounterVec

	participantsCreated prometheus.Counter
	levelChanges        prometheus.Counter
	claims              prometheus.Counter
	emptyClaims         prometheus.Counter
	rewardMinted        prometheus.Counter

	execute metric.Averager
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	execute, err := metric.NewAverager(
		"credit_execute",
		"time spent executing an instruction",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		execute: execute,
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "instructions",
			Help:      "number of instructions executed",
		}, []string{"instruction"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "instructions_failed",
			Help:      "number of instructions that returned an error",
		}, []string{"instruction"}),
		participantsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "participants_created",
			Help:      "number of participant records created",
		}),
		levelChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "level_changes",
			Help:      "number of level changes appended to participant history",
		}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "claims",
			Help:      "number of successful claims",
		}),
		emptyClaims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "empty_claims",
			Help:      "number of claims that had nothing to mint",
		}),
		rewardMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "credit",
			Name:      "reward_minted",
			Help:      "total reward minted to participants",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.instructions),
		r.Register(m.failed),
		r.Register(m.participantsCreated),
		r.Register(m.levelChanges),
		r.Register(m.claims),
		r.Register(m.emptyClaims),
		r.Register(m.rewardMinted),
	)
	return r, m, errs.Err
}
