// Package planner computes collision-free waypoint paths over a warehouse
// occupancy grid. Planning is an A* search on the 8-connected grid followed by
// a line-of-sight simplification pass. Fresh obstacle detections are rasterized
// onto a per-call copy of the grid, so the shared GridMap is never written
// after construction.
package planner
