package search

import "math/big"

// JobStride separates the attempt sequences of independent callers. A job id
// shifts the attempt number by JobStride per id.
const JobStride = 100000

// EffectiveAttempt folds a job id into an attempt number:
// attempt + jobID*JobStride.
func EffectiveAttempt(attempt, jobID uint64) *big.Int {
	v := new(big.Int).SetUint64(jobID)
	v.Mul(v, big.NewInt(JobStride))
	return v.Add(v, new(big.Int).SetUint64(attempt))
}

// PartitionStart returns (attempt*threads + threadID) * iterations.
// Thread threadID then scans (start, start+iterations].
func PartitionStart(threadID int, attempt *big.Int, iterations uint64, threads int) *big.Int {
	v := new(big.Int).Mul(attempt, big.NewInt(int64(threads)))
	v.Add(v, big.NewInt(int64(threadID)))
	return v.Mul(v, new(big.Int).SetUint64(iterations))
}

// PartitionSecret is PartitionStart encoded as a Secret.
func PartitionSecret(threadID int, attempt *big.Int, iterations uint64, threads int) (Secret, error) {
	return EncodeSecret(PartitionStart(threadID, attempt, iterations, threads))
}
