// Package scheduler owns the robot task queue. Tasks are admitted with a
// priority, dispatched lowest (priority, arrival) first, and tracked by their
// UUID until completed or canceled. Replan re-weights the queue by distance to
// the robot. All methods share one mutex, so the scheduler is safe for
// concurrent producers and a single consumer loop.
package scheduler
