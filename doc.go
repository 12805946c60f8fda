/*
Package glmstar fits generalized linear models (GLM) with elastic net
regularization in Go (golang).

Models are fit by cyclic coordinate descent over a decreasing path of penalty
weights, warm-starting each path step from the previous solution.  Non-Gaussian
families are handled with an outer iteratively reweighted least squares loop
that re-linearizes the response around the current fit.

The design matrix is provided as a gonum mat.Dense and is never modified.
Data held in a dstream can be converted with FromDstream.
*/
package glmstar
