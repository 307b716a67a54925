package gemini

import "google.golang.org/genai"

func str(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func integer(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger, Description: description}
}

func enum(values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: values}
}

func arrayOf(items *genai.Schema, description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items, Description: description}
}

func object(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required}
}

func userSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"id":                integer(""),
		"name":              str(""),
		"headline":          str(""),
		"bio":               str(""),
		"avatarUrl":         str("A placeholder image URL from picsum.photos, e.g., https://picsum.photos/100"),
		"industry":          str(""),
		"professionalGoals": arrayOf(str(""), ""),
		"reputation":        integer(""),
		"isRecruiter":       {Type: genai.TypeBoolean},
		"values":            arrayOf(str(""), `2-3 professional values like "Continuous Learning", "User-Centricity", "Team Ownership".`),
		"availability":      enum("Immediate", "2 weeks notice", "Exploring opportunities"),
		"workStyle": object(map[string]*genai.Schema{
			"collaboration": enum("Prefers solo work", "Thrives in pairs", "Excels in large teams"),
			"communication": enum("Prefers asynchronous", "Prefers real-time meetings"),
			"workPace":      enum("Fast-paced and iterative", "Steady and methodical"),
		}, "collaboration", "communication", "workPace"),
		"skills": arrayOf(object(map[string]*genai.Schema{
			"name":         str(""),
			"endorsements": integer(""),
		}, "name", "endorsements"), ""),
	}, "id", "name", "headline", "bio", "avatarUrl", "industry", "professionalGoals", "reputation", "isRecruiter", "values", "availability", "workStyle", "skills")
}

func postSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"id":       integer(""),
		"authorId": integer("The id of one of the generated users."),
		"content":  str(""),
		"appreciations": object(map[string]*genai.Schema{
			"helpful":            integer(""),
			"thoughtProvoking":   integer(""),
			"collaborationReady": integer(""),
		}, "helpful", "thoughtProvoking", "collaborationReady"),
		"comments":  integer(""),
		"shares":    integer(""),
		"timestamp": str(`A relative time such as "Just now", "45 minutes ago", "3 hours ago" or "2 days ago".`),
		"circleId":  integer("Only set for posts shared inside a circle."),
	}, "id", "authorId", "content", "appreciations", "comments", "shares", "timestamp")
}

func circleSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"id":          integer(""),
		"name":        str(""),
		"description": str(""),
		"members":     arrayOf(integer(""), "User ids of the circle members."),
		"adminId":     integer(""),
	}, "id", "name", "description", "members", "adminId")
}

func jobSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"id":              integer(""),
		"title":           str(""),
		"company":         str(""),
		"location":        str(""),
		"description":     str(""),
		"type":            enum("Full-time", "Contract", "Internship", "Remote"),
		"experienceLevel": enum("Entry-level", "Mid-level", "Senior-level"),
		"recruiterId":     integer("The id of one of the recruiter users."),
	}, "id", "title", "company", "location", "description", "type", "experienceLevel", "recruiterId")
}

// networkSchema describes network.Data.
func networkSchema() *genai.Schema {
	return object(map[string]*genai.Schema{
		"users":   arrayOf(userSchema(), "A list of 10 professional users. Make the second and third users recruiters."),
		"posts":   arrayOf(postSchema(), "A list of 12 posts; 3 of them belong to circles."),
		"circles": arrayOf(circleSchema(), "A list of 3 circles."),
		"jobs":    arrayOf(jobSchema(), "A list of 5 job openings."),
	}, "users", "posts", "circles", "jobs")
}

// candidateSearchSchema describes a list of network.SearchResult.
func candidateSearchSchema() *genai.Schema {
	return arrayOf(object(map[string]*genai.Schema{
		"userId": integer("The ID of the matched user."),
		"aiAnalysis": object(map[string]*genai.Schema{
			"matchReasoning":     str("A concise, 2-3 sentence summary of why this candidate is a strong match for the query."),
			"strengths":          arrayOf(str(""), "A list of 3 key strengths relevant to the query."),
			"potentialRedFlags":  arrayOf(str(""), "A list of 1-2 potential areas to probe during an interview."),
			"cultureFitAnalysis": str("A brief analysis of their potential culture fit based on their values and work style."),
			"personalityMarkers": arrayOf(str(""), "2-3 personality markers from their bio and projects."),
			"predictiveScores": object(map[string]*genai.Schema{
				"roleFit":                integer("Score (1-100) for how well their hard skills match the role implied by the query."),
				"cultureFit":             integer("Score (1-100) based on their stated values and work style."),
				"mutualSuccessPotential": integer("Score (1-100) predicting the likelihood of a successful long-term fit for both candidate and company."),
			}, "roleFit", "cultureFit", "mutualSuccessPotential"),
			"interviewQuestions": arrayOf(str(""), "2-3 interview questions tailored to this candidate."),
		}, "matchReasoning", "strengths", "potentialRedFlags", "cultureFitAnalysis", "personalityMarkers", "predictiveScores", "interviewQuestions"),
	}, "userId", "aiAnalysis"), "")
}
