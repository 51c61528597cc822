// Package training fits an ElasticNet regression on the training split and
// scores it on the test split. The fitted model and its metrics are written
// as JSON next to each other in the model trainer root directory.
package training
