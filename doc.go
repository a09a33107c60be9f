// Package knngo provides nearest-neighbor classification for Go.
//
// Knngo implements weighted-vote classification over a pluggable
// nearest-neighbor searcher: fixed-k and radius-bounded neighborhoods,
// distance weighting, class-prior correction, and deterministic
// tie-breaking.
//
// # Quick Start
//
// Fixed-k classification:
//
//	ctx := context.Background()
//	clf, _ := knngo.KNN(3).WeightsByName("distance").Build()
//	_ = clf.Fit(ctx, [][]float64{{0}, {1}, {2}, {3}}, []int{0, 0, 1, 1})
//	labels, _ := clf.Predict(ctx, [][]float64{{1.1}})
//	proba, _ := clf.PredictProba(ctx, [][]float64{{0.9}})
//
// Radius classification with outlier handling:
//
//	clf, _ := knngo.Radius(1.0).OutlierLabel(-1).Build()
//	_ = clf.Fit(ctx, vectors, labels)
//	labels, err := clf.Predict(ctx, queries)  // far-away queries yield -1
//
// # Probability Model
//
// For each query, neighbor weights are accumulated per class, divided
// by the training count of that class, multiplied by the class prior,
// and normalized to sum to one. The "default" prior is the empirical
// class frequency, which algebraically cancels the count division;
// use "flat" or an explicit prior vector for actual bias correction.
//
// # Searchers
//
// The exact brute-force searcher in package neighbors is the default
// collaborator. Any index implementing neighbors.KNNSearcher or
// neighbors.RadiusSearcher can be plugged in via the builders'
// Searcher method.
//
// # Snapshots
//
// Fitted models serialize to a self-describing container with
// selectable codec and compression, and load back ready to predict:
//
//	_ = clf.SaveToFile("model.knng")
//	clf, _ = knngo.LoadKNNFromFile("model.knng")
//
// Package modelstore provides storage backends for snapshots: memory,
// local filesystem, Amazon S3 (with a DynamoDB-backed version pointer)
// and MinIO.
package knngo
