package tmdb

import (
	"regexp"
	"strconv"
	"strings"
)

// OriginalSize is the size descriptor for the unscaled image
const OriginalSize = "original"

var sizeWidthPattern = regexp.MustCompile(`\d+`)

// posterLanguages are the poster languages requested from TMDB. Posters
// without a language tag are always accepted.
var posterLanguages = []string{"en", "de"}

// sizeWidth returns the pixel width a size descriptor stands for
func sizeWidth(descriptor string, originalWidth int) (int, error) {
	if descriptor == OriginalSize {
		return originalWidth, nil
	}

	digits := sizeWidthPattern.FindString(descriptor)
	if digits == "" {
		return 0, &SizeError{Descriptor: descriptor}
	}
	width, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &SizeError{Descriptor: descriptor}
	}
	return width, nil
}

// SelectSize picks the descriptor whose width is closest to target.
// On a tie the earlier descriptor wins.
func SelectSize(sizes []string, target, originalWidth int) (string, error) {
	if len(sizes) == 0 {
		return "", &SizeError{}
	}

	best := -1
	bestDistance := 0
	for i, size := range sizes {
		width, err := sizeWidth(size, originalWidth)
		if err != nil {
			return "", err
		}

		distance := width - target
		if distance < 0 {
			distance = -distance
		}
		if best < 0 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}

	return sizes[best], nil
}

// BuildImageURL joins base URL, size and the TMDB file path. The file path
// is used as is.
func BuildImageURL(baseURL, size, filePath string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.Trim(size, "/") + "/" + strings.TrimLeft(filePath, "/")
}

// acceptedPoster reports whether a poster has one of the requested languages
func acceptedPoster(img Image) bool {
	if img.Language == nil || *img.Language == "" {
		return true
	}
	for _, lang := range posterLanguages {
		if *img.Language == lang {
			return true
		}
	}
	return false
}

// bestPoster returns the accepted poster with the highest vote average.
// The first poster wins ties. ok is false if no poster is accepted.
func bestPoster(posters []Image) (best Image, ok bool) {
	for _, img := range posters {
		if !acceptedPoster(img) {
			continue
		}
		if !ok || img.VoteAverage > best.VoteAverage {
			best = img
			ok = true
		}
	}
	return best, ok
}

// languageParam renders posterLanguages for include_image_language
func languageParam() string {
	return strings.Join(append(append([]string(nil), posterLanguages...), "null"), ",")
}
