/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package advice

import (
	"errors"
	"strconv"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rulego/weaver/api/types"
)

// Refresher reloads stacks on cron schedules, so that advice wiring changes between
// calls are picked up without resolving on every call.
// Specs include a seconds field, for example "*/30 * * * * *".
type Refresher struct {
	config types.Config
	cron   *cron.Cron
	mu     sync.Mutex
}

// NewRefresher creates a stopped refresher.
func NewRefresher(config types.Config) *Refresher {
	return &Refresher{config: config, cron: cron.New(cron.WithSeconds())}
}

// Schedule reloads stacks on spec and returns the id of the schedule.
func (r *Refresher) Schedule(spec string, stacks ...Reloader) (string, error) {
	if len(stacks) == 0 {
		return "", errors.New("no stacks to refresh")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron == nil {
		r.cron = cron.New(cron.WithSeconds())
	}
	id, err := r.cron.AddFunc(spec, func() {
		r.Refresh(stacks...)
	})
	if err != nil {
		return "", err
	}
	return strconv.Itoa(int(id)), nil
}

// Remove removes the schedule with id.
func (r *Refresher) Remove(id string) error {
	entryID, err := strconv.Atoi(id)
	if err != nil {
		return errors.New(id + " is an illegal schedule id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		r.cron.Remove(cron.EntryID(entryID))
	}
	return nil
}

// Refresh reloads stacks now. Failures are logged and the stack keeps its previous advice.
func (r *Refresher) Refresh(stacks ...Reloader) {
	defer func() {
		//捕捉异常
		if e := recover(); e != nil {
			r.Printf("refresh err :%v", e)
		}
	}()
	for _, s := range stacks {
		if err := s.Reload(); err != nil {
			r.Printf("reload advice stack err :%v", err)
		}
	}
}

func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron == nil {
		r.cron = cron.New(cron.WithSeconds())
	}
	r.cron.Start()
}

// Stop stops and discards the schedules. Running reloads are not waited for.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		r.cron.Stop()
		r.cron = nil
	}
}

func (r *Refresher) Printf(format string, v ...interface{}) {
	if r.config.Logger != nil {
		r.config.Logger.Printf(format, v...)
	}
}
