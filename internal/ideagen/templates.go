package ideagen

import "fmt"

// demoTemplates are served when no API key is configured.
var demoTemplates = [Count]string{
	"1. Create a video series about %s for beginners",
	"2. Write a blog post comparing different approaches to %s",
	"3. Develop an infographic explaining key concepts of %s",
	"4. Host a live Q&A session about %s on social media",
	"5. Create a tutorial series showing practical applications of %s",
}

// fallbackTemplates are served when a live call fails. They are worded
// differently from the demo set so the two cases can be told apart.
var fallbackTemplates = [Count]string{
	"1. Beginner's guide to %s",
	"2. Advanced techniques for %s",
	"3. Common mistakes to avoid in %s",
	"4. Tools and resources for %s",
	"5. Future trends in %s",
}

const paddingTemplate = "Creative idea about %s - explore unique angles"

func fromTemplates(templates [Count]string, topic string) Ideas {
	var ideas Ideas
	for i, tmpl := range templates {
		ideas[i] = fmt.Sprintf(tmpl, topic)
	}
	return ideas
}

func padding(topic string) string {
	return fmt.Sprintf(paddingTemplate, topic)
}
