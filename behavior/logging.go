/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package behavior

import (
	"go.uber.org/zap"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/logger"
)

// NewLogging decorates next with structured logs of every call. A nil log
// uses the process logger at call time.
func NewLogging(next apis.Behavior, log *zap.Logger) apis.Behavior {
	return &loggingBehavior{next: next, log: log}
}

type loggingBehavior struct {
	next apis.Behavior
	log  *zap.Logger
}

var _ apis.Behavior = (*loggingBehavior)(nil)

func (b *loggingBehavior) sink() *zap.Logger {
	if b.log != nil {
		return b.log
	}
	return logger.Named("behavior")
}

func (b *loggingBehavior) Register(r apis.Registration) error {
	err := b.next.Register(r)
	fields := []zap.Field{
		zap.String("name", r.Name),
		zap.Int("version", r.Version),
		zap.String("module", r.Module),
		zap.String("decl", r.Identity.Context()),
	}
	if err != nil {
		b.sink().Warn("register failed", append(fields, zap.Error(err))...)
		return err
	}
	b.sink().Info("registered", fields...)
	return nil
}

func (b *loggingBehavior) Unregister(name string) error {
	if err := b.next.Unregister(name); err != nil {
		b.sink().Warn("unregister failed", zap.String("name", name), zap.Error(err))
		return err
	}
	b.sink().Info("unregistered", zap.String("name", name))
	return nil
}

func (b *loggingBehavior) CreateDescriptor(spec apis.DescriptorSpec) (apis.Descriptor, error) {
	d, err := b.next.CreateDescriptor(spec)
	if err != nil {
		b.sink().Warn("create descriptor failed", zap.String("name", spec.Name), zap.Error(err))
		return nil, err
	}
	b.sink().Debug("descriptor created",
		zap.String("name", d.Name()),
		zap.Int("version", d.Version()),
		zap.Stringer("kind", d.Kind()),
		zap.Uint64("checksum", d.Checksum()),
	)
	return d, nil
}
