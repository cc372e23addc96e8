package utils

import (
	"math/rand"
	"strings"
)

// Word lists for generated audience nicknames, an adjective paired with a
// character name.
var nicknameAdjectives = []string{
	"노래하는", "춤추는", "박수치는", "설레는",
	"행복한", "즐거운", "기대하는", "소리치는",
	"감동받은", "수줍은", "열정적인", "우아한",
}

var nicknameCharacters = []string{
	"라이언", "무지", "어피치", "프로도",
	"네오", "튜브", "제이지", "콘",
	"춘식이", "죠르디",
}

// GenerateNickname returns a random "adjective character" pair drawn
// uniformly from the fixed word lists.
func GenerateNickname() string {
	adj := nicknameAdjectives[rand.Intn(len(nicknameAdjectives))]
	char := nicknameCharacters[rand.Intn(len(nicknameCharacters))]
	return adj + " " + char
}

// NormalizeNickname trims a caller-supplied nickname, falling back to a
// generated one when the input is blank.
func NormalizeNickname(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return GenerateNickname()
	}
	return s
}
