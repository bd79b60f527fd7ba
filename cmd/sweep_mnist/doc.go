// Package main provides a demo program performing a random hyperparameter
// search over a small MNIST convnet. Each session group samples one
// hyperparameter assignment and trains it twice; the per-session metric
// logs land under the log directory, keyed by session id.
package main
