package frontmatterops

import "git.home.luguber.info/inful/coursebuilder/internal/course"

// ConsolidateTopics groups collections by topic, then subtopic, keeping
// first-seen order and dropping duplicates at every level.
func ConsolidateTopics(collections []course.Collection) []Topic {
	topics := []Topic{}
	topicIdx := map[string]int{}
	subIdx := map[[2]string]int{}
	seenSpec := map[[3]string]bool{}

	for _, c := range collections {
		if c.Feature == "" {
			continue
		}
		ti, ok := topicIdx[c.Feature]
		if !ok {
			ti = len(topics)
			topicIdx[c.Feature] = ti
			topics = append(topics, Topic{Topic: c.Feature, Subtopics: []Subtopic{}})
		}
		if c.Subfeature == "" {
			continue
		}

		subKey := [2]string{c.Feature, c.Subfeature}
		si, ok := subIdx[subKey]
		if !ok {
			si = len(topics[ti].Subtopics)
			subIdx[subKey] = si
			topics[ti].Subtopics = append(topics[ti].Subtopics, Subtopic{Subtopic: c.Subfeature, Specialities: []string{}})
		}
		if c.Speciality == "" {
			continue
		}

		specKey := [3]string{c.Feature, c.Subfeature, c.Speciality}
		if seenSpec[specKey] {
			continue
		}
		seenSpec[specKey] = true
		topics[ti].Subtopics[si].Specialities = append(topics[ti].Subtopics[si].Specialities, c.Speciality)
	}
	return topics
}
