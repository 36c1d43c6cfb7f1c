// Package pose models the landmark data delivered by the external camera
// pipeline and the keypoint set the comparison backend expects.
package pose

import (
	"encoding/json"
	"fmt"
)

// Keypoint names one body joint.
type Keypoint string

const (
	Nose          Keypoint = "NOSE"
	LeftShoulder  Keypoint = "LEFT_SHOULDER"
	RightShoulder Keypoint = "RIGHT_SHOULDER"
	LeftElbow     Keypoint = "LEFT_ELBOW"
	RightElbow    Keypoint = "RIGHT_ELBOW"
	LeftWrist     Keypoint = "LEFT_WRIST"
	RightWrist    Keypoint = "RIGHT_WRIST"
	LeftHip       Keypoint = "LEFT_HIP"
	RightHip      Keypoint = "RIGHT_HIP"
	LeftKnee      Keypoint = "LEFT_KNEE"
	RightKnee     Keypoint = "RIGHT_KNEE"
	LeftAnkle     Keypoint = "LEFT_ANKLE"
	RightAnkle    Keypoint = "RIGHT_ANKLE"
)

// landmarkIndex maps each required keypoint to its index in a MediaPipe
// Pose frame (33 landmarks).
var landmarkIndex = map[Keypoint]int{
	Nose:          0,
	LeftShoulder:  11,
	RightShoulder: 12,
	LeftElbow:     13,
	RightElbow:    14,
	LeftWrist:     15,
	RightWrist:    16,
	LeftHip:       23,
	RightHip:      24,
	LeftKnee:      25,
	RightKnee:     26,
	LeftAnkle:     27,
	RightAnkle:    28,
}

// Required returns the 13 keypoints sent to the comparison backend, in a
// stable order.
func Required() []Keypoint {
	return []Keypoint{
		Nose,
		LeftShoulder, RightShoulder,
		LeftElbow, RightElbow,
		LeftWrist, RightWrist,
		LeftHip, RightHip,
		LeftKnee, RightKnee,
		LeftAnkle, RightAnkle,
	}
}

// IsRequired reports whether k is one of the required keypoints.
func IsRequired(k Keypoint) bool {
	_, ok := landmarkIndex[k]
	return ok
}

// Point is a normalized 2D coordinate. It encodes as a JSON [x, y] pair.
type Point struct {
	X, Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("point must be an [x, y] array: %w", err)
	}

	if len(pair) < 2 {
		return fmt.Errorf("point must have 2 coordinates, got %d", len(pair))
	}

	p.X, p.Y = pair[0], pair[1]

	return nil
}

// Keypoints is the payload shape of the compare endpoint.
type Keypoints map[Keypoint]Point

// Landmark is one point of a raw MediaPipe frame.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// FromLandmarks picks the required keypoints out of a full MediaPipe frame.
// Keypoints whose index is beyond the frame are left out.
func FromLandmarks(frame []Landmark) Keypoints {
	kps := make(Keypoints, len(landmarkIndex))

	for name, idx := range landmarkIndex {
		if idx < len(frame) {
			kps[name] = Point{X: frame[idx].X, Y: frame[idx].Y}
		}
	}

	return kps
}

// Filter drops keypoints that the backend does not expect.
func Filter(in Keypoints) Keypoints {
	out := make(Keypoints, len(in))

	for name, pt := range in {
		if IsRequired(name) {
			out[name] = pt
		}
	}

	return out
}
