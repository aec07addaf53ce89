// Package kinematics converts between attitude representations.
//
// [ToAxisVector] and [FromAxisVector] map Euler-angle rates to and from the
// angular-velocity vector along the rotation axis; they are evaluated at the
// attitude before a step is applied. [BodyToInertial] rotates body-frame
// forces into the inertial frame.
package kinematics
