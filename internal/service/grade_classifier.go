package service

import "math"

// PassingPercentage 及格线（含）
const PassingPercentage = 60.0

type gradeBand struct {
	min    float64
	point  float64
	letter string
}

// 下界含，降序
var gradeBands = []gradeBand{
	{97, 4.0, "A+"},
	{93, 4.0, "A"},
	{90, 3.7, "A-"},
	{87, 3.3, "B+"},
	{83, 3.0, "B"},
	{80, 2.7, "B-"},
	{77, 2.3, "C+"},
	{73, 2.0, "C"},
	{70, 1.7, "C-"},
	{67, 1.3, "D+"},
	{63, 1.0, "D"},
	{60, 0.7, "D-"},
}

// ClassifyGrade 百分比转绩点和等级；超出 [0,100] 的值由调用方截断
func ClassifyGrade(percentage float64) (float64, string) {
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.point, band.letter
		}
	}
	return 0.0, "F"
}

func IsPassing(percentage float64) bool {
	return percentage >= PassingPercentage
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percentOf(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	return roundTo2(100 * float64(score) / float64(max))
}
