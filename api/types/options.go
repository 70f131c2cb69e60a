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

package types

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithOnDebug is an option that sets the on debug callback of the Config.
func WithOnDebug(onDebug OnDebugFunc) Option {
	return func(c *Config) error {
		c.OnDebug = onDebug
		return nil
	}
}

// WithPool is an option that sets the pool of the Config.
func WithPool(pool Pool) Option {
	return func(c *Config) error {
		c.Pool = pool
		return nil
	}
}

// WithDefaultPool is an option that starts a default worker pool.
func WithDefaultPool() Option {
	return func(c *Config) error {
		c.Pool = DefaultPool()
		return nil
	}
}

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = NewLogger(logger)
		return nil
	}
}

// WithProvider is an option that sets the advice provider of the Config.
func WithProvider(provider Provider) Option {
	return func(c *Config) error {
		c.Provider = provider
		return nil
	}
}

// WithMetadata is an option that sets the metadata lookup of the Config.
func WithMetadata(lookup MetadataLookup) Option {
	return func(c *Config) error {
		c.Metadata = lookup
		return nil
	}
}
