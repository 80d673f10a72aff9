// Package model holds the types shared by the pipeline and its options: the step
// descriptions and the hook interface a pipeline option implements.
package model
